package model

import "sort"

type InputType string

const (
	TypeString  InputType = "string"
	TypeInteger InputType = "integer"
	TypeNumber  InputType = "number"
	TypeBoolean InputType = "boolean"
	TypeUnknown InputType = "unknown"
)

// Input is an input parameter an API needs before it can be called.
type Input struct {
	Name        string
	Type        InputType
	Required    bool
	Description string
	Example     string
	Default     string
}

// API is one entry of the field catalog: the inputs the API expects and the
// dotted output field paths it produces.
type API struct {
	Name     string
	Title    string
	Required []Input
	Outputs  []string
}

// RequiredNames returns the names of the inputs marked required, in order.
func (a API) RequiredNames() []string {
	var out []string
	for _, in := range a.Required {
		if in.Required {
			out = append(out, in.Name)
		}
	}
	return out
}

// Catalog is an ordered set of APIs, static after load.
type Catalog struct {
	apis   []API
	byName map[string]int
}

func NewCatalog(apis []API) *Catalog {
	c := &Catalog{apis: apis, byName: make(map[string]int, len(apis))}
	for i, a := range apis {
		c.byName[a.Name] = i
	}
	return c
}

func (c *Catalog) APIs() []API { return c.apis }

func (c *Catalog) Len() int { return len(c.apis) }

func (c *Catalog) Get(name string) (API, bool) {
	i, ok := c.byName[name]
	if !ok {
		return API{}, false
	}
	return c.apis[i], true
}

// Names returns the API names sorted alphabetically.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.apis))
	for _, a := range c.apis {
		out = append(out, a.Name)
	}
	sort.Strings(out)
	return out
}
