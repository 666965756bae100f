package upstream

import (
	"bytes"
	"encoding/json"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// Table names one upstream data table.
type Table string

// Upstream tables.
const (
	ProfileTable Table = constants.ProfileTable
	LabelTable   Table = constants.LabelTable
)

// Tables lists every table a build needs.
var Tables = []Table{ProfileTable, LabelTable}

// ProfileRecord is one row of the character profile table.
type ProfileRecord struct {
	CharacterID      int    `json:"CharacterId"`
	FamilyNameJp     string `json:"FamilyNameJp"`
	FamilyNameRubyJp string `json:"FamilyNameRubyJp"`
	PersonalNameJp   string `json:"PersonalNameJp"`
}

// LabelRecord is one row of the scenario character name table.
type LabelRecord struct {
	NameJP        string `json:"NameJP"`
	SmallPortrait string `json:"SmallPortrait"`
}

var bom = []byte("\xef\xbb\xbf")

// decodeList decodes the DataList array of an upstream table.
func decodeList[T any](table Table, data []byte) ([]T, error) {
	var doc struct {
		DataList []T `json:"DataList"`
	}
	if err := json.Unmarshal(bytes.TrimPrefix(data, bom), &doc); err != nil {
		return nil, errors.WrapParse("json", string(table), err)
	}
	if doc.DataList == nil {
		return nil, errors.NewParseError("json", string(table), "missing DataList", nil)
	}
	return doc.DataList, nil
}

// ParseProfiles converts the profile table into profile records in table
// order.
func ParseProfiles(data []byte) ([]reconciler.Profile, error) {
	rows, err := decodeList[ProfileRecord](ProfileTable, data)
	if err != nil {
		return nil, err
	}
	profiles := make([]reconciler.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, reconciler.Profile{
			CharacterID:    row.CharacterID,
			FamilyName:     row.FamilyNameJp,
			PersonalName:   row.PersonalNameJp,
			FamilyNameRuby: row.FamilyNameRubyJp,
		})
	}
	return profiles, nil
}

// ParseLabels converts the scenario name table into labels. Rows repeat per
// scene; the asset index collapses them.
func ParseLabels(data []byte) ([]assets.Label, error) {
	rows, err := decodeList[LabelRecord](LabelTable, data)
	if err != nil {
		return nil, err
	}
	labels := make([]assets.Label, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, assets.Label{Key: row.NameJP, Ref: row.SmallPortrait})
	}
	return labels, nil
}
