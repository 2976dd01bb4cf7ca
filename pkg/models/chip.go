package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionChip is a quick-access element offering one-click routing into a
// branch. Chips optionally associate with a program or a showcase item.
//
// The id is the key of the action_chips section and is not serialized on the
// record. Legacy documents store chips as an ordered array; NormalizeActionChips
// converts that shape to the canonical id-keyed mapping at load time so the
// rest of the system only ever sees the mapping.
type ActionChip struct {
	ID               string `json:"-"`
	Label            string `json:"label" validate:"required"`
	Value            string `json:"value" validate:"required"`
	Action           string `json:"action,omitempty"`
	TargetBranch     string `json:"target_branch,omitempty"`
	ProgramID        string `json:"program_id,omitempty"`
	TargetShowcaseID string `json:"target_showcase_id,omitempty"`
}

func (a ActionChip) EntityID() string { return a.ID }

func (a ActionChip) DisplayName() string { return a.Label }

// SlugID derives a chip id from a display label: lowercased, with every run
// of non-alphanumeric characters collapsed to a single hyphen.
func SlugID(label string) string {
	var b strings.Builder

	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)

			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')

				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// NormalizeActionChips converts the action_chips section to the canonical
// id-keyed mapping. The input is either already a mapping or a legacy ordered
// array; array entries receive ids derived from a slug of their label, with
// collisions disambiguated by the entry's position in the array.
func NormalizeActionChips(raw json.RawMessage) (map[string]ActionChip, error) {
	if len(raw) == 0 {
		return map[string]ActionChip{}, nil
	}

	trimmed := strings.TrimLeft(string(raw), " \t\r\n")
	if trimmed == "" || trimmed == "null" {
		return map[string]ActionChip{}, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var keyed map[string]ActionChip
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, fmt.Errorf("failed to parse action_chips mapping: %w", err)
		}

		for id, chip := range keyed {
			chip.ID = id
			keyed[id] = chip
		}

		return keyed, nil
	}

	var legacy []ActionChip
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("failed to parse legacy action_chips array: %w", err)
	}

	chips := make(map[string]ActionChip, len(legacy))

	for position, chip := range legacy {
		id := SlugID(chip.Label)
		if id == "" {
			id = fmt.Sprintf("chip-%d", position+1)
		}

		// The positional suffix can itself collide with another chip's
		// natural slug, so keep bumping until the id is free.
		if _, taken := chips[id]; taken {
			base := id
			for suffix := position + 1; ; suffix++ {
				id = fmt.Sprintf("%s-%d", base, suffix)
				if _, taken := chips[id]; !taken {
					break
				}
			}
		}

		chip.ID = id
		chips[id] = chip
	}

	return chips, nil
}
