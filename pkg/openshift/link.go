package openshift

// HTTPMethod is the verb a link is invoked with.
type HTTPMethod string

// Supported HTTP methods.
const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
)

// ParameterType is the declared type of a link parameter.
type ParameterType string

// Parameter types declared by the broker.
const (
	ParameterTypeString  ParameterType = "string"
	ParameterTypeBoolean ParameterType = "boolean"
	ParameterTypeInteger ParameterType = "integer"
	ParameterTypeArray   ParameterType = "array"
)

// Relation names a link in a resource's catalog.
type Relation string

// Relations used by the client. They must match the broker's link keys exactly.
const (
	RelAPI              Relation = "API"
	RelGetUser          Relation = "GET_USER"
	RelListDomains      Relation = "LIST_DOMAINS"
	RelAddDomain        Relation = "ADD_DOMAIN"
	RelListKeys         Relation = "LIST_KEYS"
	RelAddKey           Relation = "ADD_KEY"
	RelGet              Relation = "GET"
	RelUpdate           Relation = "UPDATE"
	RelDelete           Relation = "DELETE"
	RelListApplications Relation = "LIST_APPLICATIONS"
	RelAddApplication   Relation = "ADD_APPLICATION"
	RelStart            Relation = "START"
	RelStop             Relation = "STOP"
	RelForceStop        Relation = "FORCE_STOP"
	RelRestart          Relation = "RESTART"
	RelScaleUp          Relation = "SCALE_UP"
	RelScaleDown        Relation = "SCALE_DOWN"
	RelAddAlias         Relation = "ADD_ALIAS"
	RelRemoveAlias      Relation = "REMOVE_ALIAS"
	RelListCartridges   Relation = "LIST_CARTRIDGES"
	RelAddCartridge     Relation = "ADD_CARTRIDGE"
	RelGetGears         Relation = "GET_GEARS"
)

// LinkParameter describes one parameter accepted by a link.
type LinkParameter struct {
	Name         string        `json:"name"                    yaml:"name"`
	Type         ParameterType `json:"type"                    yaml:"type"`
	Description  string        `json:"description,omitempty"   yaml:"description,omitempty"`
	DefaultValue interface{}   `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	ValidOptions []string      `json:"valid_options,omitempty" yaml:"valid_options,omitempty"`
}

// HasValidOptions reports whether the parameter is restricted to an enumerated set.
func (p LinkParameter) HasValidOptions() bool {
	return len(p.ValidOptions) > 0
}

// IsValidOption reports whether value is acceptable for the parameter.
// Unconstrained parameters accept any value.
func (p LinkParameter) IsValidOption(value string) bool {
	if !p.HasValidOptions() {
		return true
	}

	for _, option := range p.ValidOptions {
		if option == value {
			return true
		}
	}

	return false
}

// Link is one invocable operation advertised by the broker.
// Links are treated as immutable once decoded.
type Link struct {
	Rel            string          `json:"rel"                       yaml:"rel"`
	Href           string          `json:"href"                      yaml:"href"`
	Method         HTTPMethod      `json:"method"                    yaml:"method"`
	RequiredParams []LinkParameter `json:"required_params,omitempty" yaml:"required_params,omitempty"`
	OptionalParams []LinkParameter `json:"optional_params,omitempty" yaml:"optional_params,omitempty"`
}

// RequiredParam returns the required parameter with the given name.
func (l Link) RequiredParam(name string) (LinkParameter, bool) {
	return findParam(l.RequiredParams, name)
}

// OptionalParam returns the optional parameter with the given name.
func (l Link) OptionalParam(name string) (LinkParameter, bool) {
	return findParam(l.OptionalParams, name)
}

func findParam(params []LinkParameter, name string) (LinkParameter, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}

	return LinkParameter{}, false
}

// Links is a resource's link catalog keyed by relation.
//
// A nil Links is unresolved: the catalog was never fetched. A non-nil empty
// Links is resolved and offers no operations.
type Links map[Relation]Link

// Resolved reports whether the catalog has been fetched.
func (l Links) Resolved() bool {
	return l != nil
}

// Get returns the link for rel.
func (l Links) Get(rel Relation) (Link, bool) {
	link, ok := l[rel]

	return link, ok
}

// Has reports whether rel is offered.
func (l Links) Has(rel Relation) bool {
	_, ok := l[rel]

	return ok
}

// Clone returns a copy that shares no map storage with l. A nil catalog stays nil.
func (l Links) Clone() Links {
	if l == nil {
		return nil
	}

	out := make(Links, len(l))
	for k, v := range l {
		out[k] = v
	}

	return out
}

// Missing returns the relations from rels that the catalog does not offer.
func (l Links) Missing(rels ...Relation) []Relation {
	var missing []Relation

	for _, rel := range rels {
		if !l.Has(rel) {
			missing = append(missing, rel)
		}
	}

	return missing
}
