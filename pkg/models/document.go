package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Section names of the root configuration document.
const (
	SectionPrograms            = "programs"
	SectionForms               = "forms"
	SectionCTAs                = "ctas"
	SectionBranches            = "conversation_branches"
	SectionActionChips         = "action_chips"
	SectionShowcase            = "content_showcase"
	SectionCTASettings         = "cta_settings"
	SectionBedrockInstructions = "bedrock_instructions"
	SectionMetadata            = "metadata"
)

// EditableSections are replaced wholesale from client edits on deployment.
var EditableSections = []string{
	SectionPrograms,
	SectionForms,
	SectionCTAs,
	SectionBranches,
	SectionShowcase,
	SectionCTASettings,
	SectionBedrockInstructions,
}

// ReadOnlySections are preserved verbatim from the server document on
// deployment. action_chips is also produced by an external deployment
// pipeline with a stricter schema than the editor enforces.
var ReadOnlySections = []string{
	SectionActionChips,
}

// Document is the root configuration document as stored by the server:
// named top-level sections kept as raw JSON so that sections the editor does
// not know about survive a load/deploy round trip byte-for-byte.
type Document map[string]json.RawMessage

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for name, raw := range d {
		out[name] = append(json.RawMessage(nil), raw...)
	}

	return out
}

// Metadata is the document-level metadata stamped on every deployment.
type Metadata struct {
	Version      int    `json:"version"`
	UpdatedAt    string `json:"updated_at,omitempty"`
	DeploymentID string `json:"deployment_id,omitempty"`
}

// Collections is the in-memory, typed view of the six entity sections plus
// the opaque editable settings sections. Every collection is id-keyed
// regardless of its on-wire shape.
type Collections struct {
	Programs            map[string]Program
	Forms               map[string]ConversationalForm
	CTAs                map[string]CTADefinition
	Branches            map[string]ConversationBranch
	Chips               map[string]ActionChip
	Showcase            map[string]ShowcaseItem
	CTASettings         map[string]any
	BedrockInstructions map[string]any

	// FormsKeyed records whether the server document carried the forms
	// section as an id-keyed object rather than an array. The deployed
	// document must keep whichever shape the server already uses.
	FormsKeyed bool
}

// NewCollections returns an empty, fully-allocated Collections.
func NewCollections() *Collections {
	return &Collections{
		Programs:            map[string]Program{},
		Forms:               map[string]ConversationalForm{},
		CTAs:                map[string]CTADefinition{},
		Branches:            map[string]ConversationBranch{},
		Chips:               map[string]ActionChip{},
		Showcase:            map[string]ShowcaseItem{},
		CTASettings:         map[string]any{},
		BedrockInstructions: map[string]any{},
	}
}

// DecodeDocument converts a server document into typed collections,
// normalizing section-specific wire shapes: forms and showcase items arrive
// as arrays with embedded ids, action_chips may arrive in the legacy array
// shape, the remaining entity sections are id-keyed objects.
func DecodeDocument(doc Document) (*Collections, error) {
	c := NewCollections()

	if raw, ok := doc[SectionPrograms]; ok {
		if err := json.Unmarshal(raw, &c.Programs); err != nil {
			return nil, fmt.Errorf("failed to decode %s section: %w", SectionPrograms, err)
		}
	}

	if raw, ok := doc[SectionForms]; ok {
		if isJSONObject(raw) {
			keyed := map[string]ConversationalForm{}
			if err := json.Unmarshal(raw, &keyed); err != nil {
				return nil, fmt.Errorf("failed to decode %s section: %w", SectionForms, err)
			}

			for id, form := range keyed {
				form.FormID = id
				c.Forms[id] = form
			}

			c.FormsKeyed = true
		} else {
			var forms []ConversationalForm
			if err := json.Unmarshal(raw, &forms); err != nil {
				return nil, fmt.Errorf("failed to decode %s section: %w", SectionForms, err)
			}

			for _, form := range forms {
				c.Forms[form.FormID] = form
			}
		}
	}

	if raw, ok := doc[SectionCTAs]; ok {
		if err := json.Unmarshal(raw, &c.CTAs); err != nil {
			return nil, fmt.Errorf("failed to decode %s section: %w", SectionCTAs, err)
		}

		for id, cta := range c.CTAs {
			cta.ID = id
			c.CTAs[id] = cta
		}
	}

	if raw, ok := doc[SectionBranches]; ok {
		if err := json.Unmarshal(raw, &c.Branches); err != nil {
			return nil, fmt.Errorf("failed to decode %s section: %w", SectionBranches, err)
		}

		for id, branch := range c.Branches {
			branch.ID = id
			c.Branches[id] = branch
		}
	}

	if raw, ok := doc[SectionActionChips]; ok {
		chips, err := NormalizeActionChips(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s section: %w", SectionActionChips, err)
		}

		c.Chips = chips
	}

	if raw, ok := doc[SectionShowcase]; ok {
		var items []ShowcaseItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode %s section: %w", SectionShowcase, err)
		}

		for _, item := range items {
			c.Showcase[item.ID] = item
		}
	}

	if raw, ok := doc[SectionCTASettings]; ok {
		if err := json.Unmarshal(raw, &c.CTASettings); err != nil {
			return nil, fmt.Errorf("failed to decode %s section: %w", SectionCTASettings, err)
		}
	}

	if raw, ok := doc[SectionBedrockInstructions]; ok {
		if err := json.Unmarshal(raw, &c.BedrockInstructions); err != nil {
			return nil, fmt.Errorf("failed to decode %s section: %w", SectionBedrockInstructions, err)
		}
	}

	return c, nil
}

// EncodeSection marshals one editable collection back to its on-wire shape.
// Array-shaped sections are emitted sorted by id, which is the canonical
// server ordering.
func (c *Collections) EncodeSection(name string) (json.RawMessage, error) {
	var payload any

	switch name {
	case SectionPrograms:
		payload = c.Programs
	case SectionForms:
		if c.FormsKeyed {
			payload = c.Forms

			break
		}

		forms := make([]ConversationalForm, 0, len(c.Forms))
		for _, form := range c.Forms {
			forms = append(forms, form)
		}

		sort.Slice(forms, func(i, j int) bool { return forms[i].FormID < forms[j].FormID })

		payload = forms
	case SectionCTAs:
		payload = c.CTAs
	case SectionBranches:
		payload = c.Branches
	case SectionActionChips:
		payload = c.Chips
	case SectionShowcase:
		items := make([]ShowcaseItem, 0, len(c.Showcase))
		for _, item := range c.Showcase {
			items = append(items, item)
		}

		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

		payload = items
	case SectionCTASettings:
		payload = c.CTASettings
	case SectionBedrockInstructions:
		payload = c.BedrockInstructions
	default:
		return nil, fmt.Errorf("unknown document section: %s", name)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s section: %w", name, err)
	}

	return raw, nil
}

// Clone returns a deep copy of the collections. Slice, map, and pointer
// fields inside the records are copied too, so nothing written through a
// clone is visible in the original.
func (c *Collections) Clone() *Collections {
	out := &Collections{
		Programs:            make(map[string]Program, len(c.Programs)),
		Forms:               make(map[string]ConversationalForm, len(c.Forms)),
		CTAs:                make(map[string]CTADefinition, len(c.CTAs)),
		Branches:            make(map[string]ConversationBranch, len(c.Branches)),
		Chips:               make(map[string]ActionChip, len(c.Chips)),
		Showcase:            make(map[string]ShowcaseItem, len(c.Showcase)),
		CTASettings:         cloneAnyMap(c.CTASettings),
		BedrockInstructions: cloneAnyMap(c.BedrockInstructions),
		FormsKeyed:          c.FormsKeyed,
	}

	for id, p := range c.Programs {
		out.Programs[id] = p
	}

	for id, f := range c.Forms {
		fields := make([]FormField, len(f.Fields))
		for i, field := range f.Fields {
			field.Options = append([]string(nil), field.Options...)
			field.EligibilityGate = append([]string(nil), field.EligibilityGate...)
			fields[i] = field
		}

		f.Fields = fields

		if f.PostSubmission != nil {
			ps := *f.PostSubmission
			f.PostSubmission = &ps
		}

		out.Forms[id] = f
	}

	for id, cta := range c.CTAs {
		out.CTAs[id] = cta
	}

	for id, b := range c.Branches {
		b.DetectionKeywords = append([]string(nil), b.DetectionKeywords...)
		b.AvailableCTAs.Secondary = append([]string(nil), b.AvailableCTAs.Secondary...)
		out.Branches[id] = b
	}

	for id, chip := range c.Chips {
		out.Chips[id] = chip
	}

	for id, item := range c.Showcase {
		item.Keywords = append([]string(nil), item.Keywords...)
		item.Highlights = append([]string(nil), item.Highlights...)

		if item.Action != nil {
			action := *item.Action
			item.Action = &action
		}

		item.Stats = cloneAnyMap(item.Stats)

		out.Showcase[id] = item
	}

	return out
}

func isJSONObject(raw json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimLeft(string(raw), " \t\r\n"), "{")
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneJSONValue(v)
	}

	return out
}

// cloneJSONValue deep-copies the container shapes json.Unmarshal produces;
// scalars are returned as is.
func cloneJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneJSONValue(item)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneJSONValue(item)
		}

		return out
	default:
		return v
	}
}
