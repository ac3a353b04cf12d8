package datamodel

import (
	"errors"
	"fmt"
)

// Catalog errors.
var (
	ErrDuplicateKey  = errors.New("duplicate key in catalog")
	ErrDuplicatePath = errors.New("duplicate path in catalog")
	ErrNotInCatalog  = errors.New("key not in catalog")
	ErrNotAnObject   = errors.New("key is not an object")
)

// Entry is a single catalog row.
type Entry struct {
	Key   Key
	Param Param
}

// Catalog is the immutable parameter table of one device type. It is built
// once at startup and shared by all sessions of that device type.
type Catalog struct {
	name      string
	order     []Key
	params    map[Key]Param
	byPath    map[string]Key
	load      []Key
	transient []Key
	objects   []Key
	children  map[Key][]Key
	parent    map[Key]Key
	maxPLMNs  int
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithLoadKeys sets the keys whose paths are requested to load the full
// configuration. Object keys are fetched as partial paths.
func WithLoadKeys(keys ...Key) CatalogOption {
	return func(c *Catalog) {
		c.load = append(c.load, keys...)
	}
}

// WithTransientKeys sets the keys polled on every reconciliation cycle.
func WithTransientKeys(keys ...Key) CatalogOption {
	return func(c *Catalog) {
		c.transient = append(c.transient, keys...)
	}
}

// WithObject declares a multi-instance object and the value keys that live
// under it. Object presence is reconciled with AddObject/DeleteObject.
func WithObject(object Key, children ...Key) CatalogOption {
	return func(c *Catalog) {
		c.objects = append(c.objects, object)
		if c.children == nil {
			c.children = make(map[Key][]Key)
		}
		c.children[object] = append(c.children[object], children...)
	}
}

// WithMaxPLMNs sets the number of PLMN instances the catalog describes.
func WithMaxPLMNs(n int) CatalogOption {
	return func(c *Catalog) {
		c.maxPLMNs = n
	}
}

// NewCatalog builds a catalog from entries and validates that keys and
// paths are unique and that every key referenced by an option is present.
func NewCatalog(name string, entries []Entry, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		name:   name,
		params: make(map[Key]Param, len(entries)),
		byPath: make(map[string]Key, len(entries)),
		parent: make(map[Key]Key),
	}

	for _, e := range entries {
		if !e.Key.Valid() {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrInvalidIndex, e.Key)
		}
		if _, dup := c.params[e.Key]; dup {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrDuplicateKey, e.Key)
		}
		if other, dup := c.byPath[e.Param.Path]; dup {
			return nil, fmt.Errorf("%s: %w: %s used by %v and %v", name, ErrDuplicatePath, e.Param.Path, other, e.Key)
		}
		c.params[e.Key] = e.Param
		c.byPath[e.Param.Path] = e.Key
		c.order = append(c.order, e.Key)
	}

	for _, opt := range opts {
		opt(c)
	}

	for _, k := range append(append([]Key{}, c.load...), c.transient...) {
		if _, ok := c.params[k]; !ok {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrNotInCatalog, k)
		}
	}
	for _, obj := range c.objects {
		p, ok := c.params[obj]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrNotInCatalog, obj)
		}
		if !p.IsObject() {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrNotAnObject, obj)
		}
		for _, child := range c.children[obj] {
			if _, ok := c.params[child]; !ok {
				return nil, fmt.Errorf("%s: %w: %v", name, ErrNotInCatalog, child)
			}
			c.parent[child] = obj
		}
	}

	return c, nil
}

// Name returns the device type name the catalog belongs to.
func (c *Catalog) Name() string {
	return c.name
}

// Param returns the descriptor for a key.
func (c *Catalog) Param(k Key) (Param, bool) {
	p, ok := c.params[k]
	return p, ok
}

// Has reports whether the key is part of the catalog.
func (c *Catalog) Has(k Key) bool {
	_, ok := c.params[k]
	return ok
}

// KeyForPath returns the key bound to a full path.
func (c *Catalog) KeyForPath(path string) (Key, bool) {
	k, ok := c.byPath[path]
	return k, ok
}

// Keys returns all keys in catalog order.
func (c *Catalog) Keys() []Key {
	return append([]Key(nil), c.order...)
}

// ScalarKeys returns the keys of all value parameters in catalog order.
func (c *Catalog) ScalarKeys() []Key {
	var keys []Key
	for _, k := range c.order {
		if !c.params[k].IsObject() {
			keys = append(keys, k)
		}
	}
	return keys
}

// LoadKeys returns the keys fetched to load the full configuration.
func (c *Catalog) LoadKeys() []Key {
	return append([]Key(nil), c.load...)
}

// LoadPaths returns the parameter names to request in a full load.
func (c *Catalog) LoadPaths() []string {
	return c.paths(c.load)
}

// TransientKeys returns the keys polled every cycle.
func (c *Catalog) TransientKeys() []Key {
	return append([]Key(nil), c.transient...)
}

// TransientPaths returns the parameter names of the transient keys.
func (c *Catalog) TransientPaths() []string {
	return c.paths(c.transient)
}

// ObjectKeys returns the declared multi-instance objects in declaration order.
func (c *Catalog) ObjectKeys() []Key {
	return append([]Key(nil), c.objects...)
}

// ObjectChildren returns the value keys under an object.
func (c *Catalog) ObjectChildren(obj Key) []Key {
	return append([]Key(nil), c.children[obj]...)
}

// ParentObject returns the object a value key belongs to, if any.
func (c *Catalog) ParentObject(k Key) (Key, bool) {
	p, ok := c.parent[k]
	return p, ok
}

// IsManagedObject reports whether k is a declared multi-instance object.
func (c *Catalog) IsManagedObject(k Key) bool {
	_, ok := c.children[k]
	return ok
}

// AdminKey returns the key of the cell admin-enable switch.
func (c *Catalog) AdminKey() Key {
	return K(AdminState)
}

// MaxPLMNs returns the number of PLMN instances the catalog supports.
func (c *Catalog) MaxPLMNs() int {
	return c.maxPLMNs
}

func (c *Catalog) paths(keys []Key) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.params[k].Path)
	}
	return out
}
