package audit

import "strings"

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// apiPrefix is stripped from route patterns before mapping.
const apiPrefix = "/api/"

// resourceNames maps the first path segment to its audit resource name.
var resourceNames = map[string]string{
	"auth":         "authentication",
	"users":        "user",
	"employees":    "employee",
	"departments":  "department",
	"designations": "designation",
	"attendance":   "attendance",
	"leave":        "leave",
	"salary":       "salary",
	"payroll":      "payroll",
}

// ParseRoute returns action and resource for an HTTP method and chi route pattern
// (e.g. PATCH /api/users/{id}/approve). Resource comes from the first segment after /api.
// Action is the last static segment after the resource when there is one (approve, check-in becomes
// check_in), else a verb derived from the method: create, update, delete, get or list.
func ParseRoute(method, pattern string) ActionResource {
	path := strings.Trim(strings.TrimPrefix(pattern, apiPrefix), "/")
	if path == "" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	segments := strings.Split(path, "/")
	resource, ok := resourceNames[segments[0]]
	if !ok {
		resource = strings.ToLower(segments[0])
	}

	last := segments[len(segments)-1]
	if len(segments) > 1 && !isParam(last) {
		return ActionResource{Action: strings.ReplaceAll(last, "-", "_"), Resource: resource}
	}
	return ActionResource{Action: methodToAction(method, isParam(last)), Resource: resource}
}

func isParam(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

func methodToAction(method string, byID bool) string {
	switch strings.ToUpper(method) {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	case "GET":
		if byID {
			return "get"
		}
		return "list"
	default:
		return strings.ToLower(method)
	}
}

// Mutating reports whether method changes state and is therefore audited by the HTTP middleware.
func Mutating(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}
