package catalogs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
)

// Format is a catalog encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode serializes the catalog. Equal catalogs encode to identical bytes.
func (cat *Catalog) Encode(format Format) ([]byte, error) {
	entities := cat.entities
	if entities == nil {
		entities = []Entity{}
	}

	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entities); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := yaml.MarshalWithOptions(entities, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
		return data, nil
	}
}

// Decode parses a catalog in the given format.
func Decode(data []byte, format Format) (*Catalog, error) {
	var entities []Entity
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &entities); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
	default:
		if err := yaml.Unmarshal(data, &entities); err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
	}
	return New(entities...), nil
}

// Load reads a catalog file. A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	cat, err := Decode(data, FormatFromPath(path))
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) {
			perr.File = path
		}
		return nil, err
	}
	return cat, nil
}

// Write encodes the catalog into path, replacing it atomically.
func (cat *Catalog) Write(path string) error {
	data, err := cat.Encode(FormatFromPath(path))
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// Save writes the resolved entities to catalog.yaml and the placeholders to
// review.yaml under dir.
func (cat *Catalog) Save(dir string) error {
	resolved, review := cat.Split()
	if err := resolved.Write(filepath.Join(dir, constants.CatalogFile)); err != nil {
		return errors.WrapResource("save", "catalog", constants.CatalogFile, err)
	}
	if err := review.Write(filepath.Join(dir, constants.ReviewFile)); err != nil {
		return errors.WrapResource("save", "catalog", constants.ReviewFile, err)
	}
	return nil
}

// LoadDir reads catalog.yaml and review.yaml from dir into one catalog.
func LoadDir(dir string) (*Catalog, error) {
	resolved, err := Load(filepath.Join(dir, constants.CatalogFile))
	if err != nil {
		return nil, err
	}
	review, err := Load(filepath.Join(dir, constants.ReviewFile))
	if err != nil {
		return nil, err
	}
	return New(append(resolved.entities, review.entities...)...), nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place so readers never see a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
