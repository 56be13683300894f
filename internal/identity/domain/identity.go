package domain

// Kind says which record an identifier names.
type Kind int

const (
	// KindUnknown is a caller-supplied id that may name either record.
	KindUnknown Kind = iota
	// KindPrincipal is an authentication account id, e.g. the sub claim of an access token.
	KindPrincipal
	// KindEmployee is an employee profile id.
	KindEmployee
)

func (k Kind) String() string {
	switch k {
	case KindPrincipal:
		return "principal"
	case KindEmployee:
		return "employee"
	default:
		return "unknown"
	}
}

// Ref is a typed identifier. The HTTP boundary builds PrincipalRef for token-derived ids and
// UnknownRef for ids taken from paths and bodies.
type Ref struct {
	Kind Kind
	ID   string
}

// PrincipalRef returns a reference to a principal id.
func PrincipalRef(id string) Ref { return Ref{Kind: KindPrincipal, ID: id} }

// EmployeeRef returns a reference to an employee profile id.
func EmployeeRef(id string) Ref { return Ref{Kind: KindEmployee, ID: id} }

// UnknownRef returns a reference whose kind must be discovered by lookup.
func UnknownRef(id string) Ref { return Ref{Kind: KindUnknown, ID: id} }

// MayBeEmployee reports whether an employee lookup can match r.
func (r Ref) MayBeEmployee() bool { return r.Kind != KindPrincipal }

// MayBePrincipal reports whether a principal lookup can match r.
func (r Ref) MayBePrincipal() bool { return r.Kind != KindEmployee }

// FallbackLabel fills the department and designation of views that have none.
const FallbackLabel = "Admin"

// Designation is the nested designation of a ProfileView.
type Designation struct {
	Name string `json:"name"`
}

// ProfileView is the denormalized person shown next to attendance, leave, salary and payroll rows.
type ProfileView struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Department  string      `json:"department"`
	Designation Designation `json:"designation"`
	// Missing is set when the reference resolved to nothing.
	Missing bool `json:"-"`
}
