// Package overrides loads the hand-maintained corrections applied on top of
// upstream data before a reconciliation pass.
//
// An override file looks like:
//
//	base_path: UIs/01_Common/01_Character
//	profiles:
//	  - name: ハナ
//	    family_name: 森
//	    id: Hana
//	images:
//	  - key: ハナ
//	    refs: [Portrait_Hana_Swimsuit.png]
//	ids:
//	  Shun: Shun_Kid
//	exclude:
//	  - Student_Portrait_Serika_Shibasek
//
// Manual data is ground truth: injected refs win over upstream labels and
// override ids bypass the remap table.
package overrides

import (
	"context"
	"maps"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// ProfileInjection adds or enriches a profile record.
type ProfileInjection struct {
	Name           string `yaml:"name" json:"name"`
	FamilyName     string `yaml:"family_name,omitempty" json:"family_name,omitempty"`
	FamilyNameRuby string `yaml:"family_name_ruby,omitempty" json:"family_name_ruby,omitempty"`
	ID             string `yaml:"id,omitempty" json:"id,omitempty"`
}

// ImageInjection labels refs with a display-name key.
type ImageInjection struct {
	Key  string   `yaml:"key" json:"key"`
	Refs []string `yaml:"refs" json:"refs"`
}

// Set is one override file.
type Set struct {
	// BasePath is joined onto injected refs that carry no directory.
	BasePath string `yaml:"base_path,omitempty" json:"base_path,omitempty"`

	Profiles []ProfileInjection `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	Images   []ImageInjection   `yaml:"images,omitempty" json:"images,omitempty"`

	// IDs maps a derived identifier to the identifier to publish.
	IDs map[string]string `yaml:"ids,omitempty" json:"ids,omitempty"`

	// Exclude lists image stems dropped from the inventory.
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// Load reads an override file. A missing file yields an empty set.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path) //nolint:gosec // override path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return &Set{}, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, err
	}
	return set, nil
}

// Parse decodes an override file. Unknown fields are rejected.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.UnmarshalWithOptions(data, &set, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks the set for entries that can never apply.
func (s *Set) Validate() error {
	var errs []error
	for i, p := range s.Profiles {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, errors.NewValidationError("profiles", i, "name cannot be empty"))
		}
	}
	for i, img := range s.Images {
		if img.Key == "" {
			errs = append(errs, errors.NewValidationError("images", i, "key cannot be empty"))
		}
		if len(img.Refs) == 0 {
			errs = append(errs, errors.NewValidationError("images", img.Key, "refs cannot be empty"))
		}
	}
	for from, to := range s.IDs {
		if from == "" || to == "" {
			errs = append(errs, errors.NewValidationError("ids", from, "remap entries need both ids"))
		}
	}
	return errors.Join(errs...)
}

// Remap returns the identifier remap table.
func (s *Set) Remap() map[string]string {
	return maps.Clone(s.IDs)
}

// Excluded returns the excluded stems, sorted.
func (s *Set) Excluded() []string {
	out := slices.Clone(s.Exclude)
	slices.Sort(out)
	return slices.Compact(out)
}

// Apply applies profile injections, image injections and exclusions. The
// given profiles and index are not modified.
func (s *Set) Apply(ctx context.Context, profiles []reconciler.Profile, idx *assets.Index) ([]reconciler.Profile, *assets.Index, error) {
	logger := logging.FromContext(ctx).With().Str("component", "overrides").Logger()

	// Step 1: profile injections
	out, err := s.injectProfiles(profiles)
	if err != nil {
		return nil, nil, err
	}

	// Step 2: image injections take precedence over upstream labels
	cloned := idx.Clone()
	for _, inj := range s.Images {
		for _, ref := range inj.Refs {
			full := s.resolve(ref)
			moved, err := cloned.Inject(inj.Key, full)
			if err != nil {
				return nil, nil, err
			}
			if len(moved) > 0 {
				logger.Info().
					Str("image", full).
					Str("key", inj.Key).
					Strs("from", moved).
					Msg("Moved injected image")
			}
		}
	}

	// Step 3: exclusions
	for _, stem := range s.Excluded() {
		if !cloned.Exclude(stem) {
			logger.Warn().Str("image", stem).Msg("Excluded image not in inventory")
		}
	}

	logger.Debug().
		Int("profiles", len(out)-len(profiles)).
		Int("images", len(s.Images)).
		Int("remaps", len(s.IDs)).
		Int("exclusions", len(s.Exclude)).
		Msg("Applied overrides")

	return out, cloned, nil
}

// injectProfiles enriches profiles an injection names and appends the rest.
// An injection with a family name only matches profiles with that family
// name.
func (s *Set) injectProfiles(profiles []reconciler.Profile) ([]reconciler.Profile, error) {
	out := slices.Clone(profiles)
	for _, inj := range s.Profiles {
		matched := false
		for i := range out {
			p := &out[i]
			if p.PersonalName != inj.Name {
				continue
			}
			if inj.FamilyName != "" && p.FamilyName != "" && p.FamilyName != inj.FamilyName {
				continue
			}
			matched = true
			if p.FamilyName == "" {
				p.FamilyName = inj.FamilyName
			}
			if p.FamilyNameRuby == "" {
				p.FamilyNameRuby = inj.FamilyNameRuby
			}
			if inj.ID != "" {
				p.IDOverride = inj.ID
			}
		}
		if matched {
			continue
		}
		if inj.ID == "" {
			return nil, errors.NewMissingIDOverrideError(inj.Name)
		}
		out = append(out, reconciler.Profile{
			PersonalName:   inj.Name,
			FamilyName:     inj.FamilyName,
			FamilyNameRuby: inj.FamilyNameRuby,
			IDOverride:     inj.ID,
		})
	}
	return out, nil
}

// resolve joins bare file names onto the base path.
func (s *Set) resolve(ref string) string {
	if s.BasePath == "" || strings.Contains(ref, "/") {
		return ref
	}
	return path.Join(s.BasePath, ref)
}
