package store

import (
	"sort"

	"github.com/longhornrumble/picasso-config-builder/pkg/models"
)

// Store holds the typed entity collections for one tenant editing session,
// plus the last-loaded server document as the merge baseline. The store is a
// dumb map: deletion guards and validation gates live in the orchestrator.
//
// Every mutation replaces the whole collection (copy-on-write), so records
// handed out by reads are never aliased by later writes.
type Store struct {
	collections *models.Collections
	baseline    models.Document
	dirty       bool
}

// New creates an empty store with no baseline.
func New() *Store {
	return &Store{collections: models.NewCollections()}
}

// NewFromDocument decodes a loaded server document into typed collections
// and retains the document itself as the deployment merge baseline.
func NewFromDocument(doc models.Document) (*Store, error) {
	collections, err := models.DecodeDocument(doc)
	if err != nil {
		return nil, err
	}

	return &Store{
		collections: collections,
		baseline:    doc.Clone(),
	}, nil
}

// Collections returns a deep copy of the current collections.
func (s *Store) Collections() *models.Collections {
	return s.collections.Clone()
}

// Baseline returns a deep copy of the last-loaded server document, or nil if
// the store was created empty.
func (s *Store) Baseline() models.Document {
	if s.baseline == nil {
		return nil
	}

	return s.baseline.Clone()
}

// Dirty reports whether the collections have diverged from the baseline.
func (s *Store) Dirty() bool {
	return s.dirty
}

// MarkClean resets the dirty flag after a successful save or deployment.
func (s *Store) MarkClean() {
	s.dirty = false
}

// SetBaseline replaces the merge baseline after a successful deployment.
func (s *Store) SetBaseline(doc models.Document) {
	s.baseline = doc.Clone()
}

// SetCTASettings replaces the opaque cta_settings section.
func (s *Store) SetCTASettings(settings map[string]any) {
	next := s.collections.Clone()
	next.CTASettings = settings
	s.collections = next
	s.dirty = true
}

// SetBedrockInstructions replaces the opaque bedrock_instructions section.
func (s *Store) SetBedrockInstructions(instructions map[string]any) {
	next := s.collections.Clone()
	next.BedrockInstructions = instructions
	s.collections = next
	s.dirty = true
}

// Collection is a typed handle to one entity collection. The generic CRUD
// orchestrator works through these handles instead of switching on kinds.
type Collection[T models.Entity] struct {
	store *Store
	kind  models.EntityKind
	read  func(*models.Collections) map[string]T
	write func(*models.Collections, map[string]T)
}

// Kind returns the collection's entity kind.
func (c Collection[T]) Kind() models.EntityKind {
	return c.kind
}

// Get returns the entity with the given id, if present.
func (c Collection[T]) Get(id string) (T, bool) {
	v, ok := c.read(c.store.collections)[id]

	return v, ok
}

// List returns every entity in the collection, sorted by id.
func (c Collection[T]) List() []T {
	col := c.read(c.store.collections)

	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, col[id])
	}

	return out
}

// Create inserts a new entity. Fails with ErrDuplicateID if the id is taken.
func (c Collection[T]) Create(id string, entity T) error {
	col := c.read(c.store.collections)
	if _, exists := col[id]; exists {
		return &EntityError{Op: "Create", Kind: c.kind, ID: id, Err: ErrDuplicateID}
	}

	c.replace(col, id, &entity)

	return nil
}

// Update replaces an existing entity. Fails with ErrNotFound if absent. The
// id is immutable after creation; the record stored is the one given.
func (c Collection[T]) Update(id string, entity T) error {
	col := c.read(c.store.collections)
	if _, exists := col[id]; !exists {
		return &EntityError{Op: "Update", Kind: c.kind, ID: id, Err: ErrNotFound}
	}

	c.replace(col, id, &entity)

	return nil
}

// Delete removes the entry unconditionally. Dependency guarding happens in
// the orchestrator, not here. Deleting an absent id is a no-op.
func (c Collection[T]) Delete(id string) {
	col := c.read(c.store.collections)
	if _, exists := col[id]; !exists {
		return
	}

	c.replace(col, id, nil)
}

// replace installs a copied collection with entity set (or removed when nil),
// inside freshly cloned collections.
func (c Collection[T]) replace(col map[string]T, id string, entity *T) {
	next := make(map[string]T, len(col)+1)
	for k, v := range col {
		next[k] = v
	}

	if entity == nil {
		delete(next, id)
	} else {
		next[id] = *entity
	}

	clone := c.store.collections.Clone()
	c.write(clone, next)
	c.store.collections = clone
	c.store.dirty = true
}

// Programs returns the typed handle for the programs collection.
func (s *Store) Programs() Collection[models.Program] {
	return Collection[models.Program]{
		store: s,
		kind:  models.KindProgram,
		read:  func(c *models.Collections) map[string]models.Program { return c.Programs },
		write: func(c *models.Collections, m map[string]models.Program) { c.Programs = m },
	}
}

// Forms returns the typed handle for the forms collection.
func (s *Store) Forms() Collection[models.ConversationalForm] {
	return Collection[models.ConversationalForm]{
		store: s,
		kind:  models.KindForm,
		read:  func(c *models.Collections) map[string]models.ConversationalForm { return c.Forms },
		write: func(c *models.Collections, m map[string]models.ConversationalForm) { c.Forms = m },
	}
}

// CTAs returns the typed handle for the ctas collection.
func (s *Store) CTAs() Collection[models.CTADefinition] {
	return Collection[models.CTADefinition]{
		store: s,
		kind:  models.KindCTA,
		read:  func(c *models.Collections) map[string]models.CTADefinition { return c.CTAs },
		write: func(c *models.Collections, m map[string]models.CTADefinition) { c.CTAs = m },
	}
}

// Branches returns the typed handle for the conversation_branches collection.
func (s *Store) Branches() Collection[models.ConversationBranch] {
	return Collection[models.ConversationBranch]{
		store: s,
		kind:  models.KindBranch,
		read:  func(c *models.Collections) map[string]models.ConversationBranch { return c.Branches },
		write: func(c *models.Collections, m map[string]models.ConversationBranch) { c.Branches = m },
	}
}

// Chips returns the typed handle for the action_chips collection.
func (s *Store) Chips() Collection[models.ActionChip] {
	return Collection[models.ActionChip]{
		store: s,
		kind:  models.KindChip,
		read:  func(c *models.Collections) map[string]models.ActionChip { return c.Chips },
		write: func(c *models.Collections, m map[string]models.ActionChip) { c.Chips = m },
	}
}

// Showcase returns the typed handle for the content_showcase collection.
func (s *Store) Showcase() Collection[models.ShowcaseItem] {
	return Collection[models.ShowcaseItem]{
		store: s,
		kind:  models.KindShowcase,
		read:  func(c *models.Collections) map[string]models.ShowcaseItem { return c.Showcase },
		write: func(c *models.Collections, m map[string]models.ShowcaseItem) { c.Showcase = m },
	}
}
