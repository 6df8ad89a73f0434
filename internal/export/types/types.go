package types

// Kind identifies which identity a record group holds.
type Kind int

const (
	// KindPhone groups records whose identity field is a phone number.
	KindPhone Kind = iota
	// KindEmail groups records whose identity field is anything else, including empty.
	KindEmail
)

var (
	phoneSchema = []string{"Username", "Password", "2FA", "Number"}
	emailSchema = []string{"Username", "Password", "2FA", "Email"}
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPhone:
		return "Phone"
	case KindEmail:
		return "Email"
	default:
		return "Unknown"
	}
}

// Schema returns the fixed column headers for the kind, in output order.
func (k Kind) Schema() []string {
	var schema []string
	if k == KindPhone {
		schema = phoneSchema
	} else {
		schema = emailSchema
	}

	return append([]string(nil), schema...)
}

// FilePrefix returns the prefix used when naming exported files.
func (k Kind) FilePrefix() string {
	if k == KindPhone {
		return "number"
	}
	return "mail"
}

// Record represents one input entry in the export file.
type Record struct {
	Username string
	Password string
	AuthCode string
	Identity string // phone number or email, depending on the group kind
}

// Values returns the record fields in schema order.
func (r *Record) Values() []string {
	return []string{r.Username, r.Password, r.AuthCode, r.Identity}
}

// Group is an ordered list of records sharing a kind.
type Group struct {
	Kind    Kind
	Records []*Record
}

// Len returns the number of records in the group. A nil group has none.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Records)
}
