package reconciler

// Profile is one declared entity from the profile source.
type Profile struct {
	CharacterID    int    `json:"character_id,omitempty" yaml:"character_id,omitempty"`
	FamilyName     string `json:"family_name,omitempty" yaml:"family_name,omitempty"`
	PersonalName   string `json:"personal_name" yaml:"personal_name"`
	FamilyNameRuby string `json:"family_name_ruby,omitempty" yaml:"family_name_ruby,omitempty"`
	IDOverride     string `json:"id,omitempty" yaml:"id,omitempty"`
}

// LookupKey identifies the entity a profile contributes to. Profiles sharing
// a personal name but not a family name map to different entities.
func (p Profile) LookupKey() string {
	return p.FamilyName + p.PersonalName
}
