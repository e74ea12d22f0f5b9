// Package status holds the status codes this server emits.
package status

type Status struct {
	Code   uint
	Reason string
}

var (
	OK                  = add(Status{200, "OK"})
	Created             = add(Status{201, "Created"})
	Accepted            = add(Status{202, "Accepted"})
	NoContent           = add(Status{204, "No Content"})
	BadRequest          = add(Status{400, "Bad Request"})
	Unauthorized        = add(Status{401, "Unauthorized"})
	Forbidden           = add(Status{403, "Forbidden"})
	NotFound            = add(Status{404, "Not Found"})
	MethodNotAllowed    = add(Status{405, "Method Not Allowed"})
	UnprocessableEntity = add(Status{422, "Unprocessable Entity"})
	InternalServerError = add(Status{500, "Internal Server Error"})
)

// UnknownReason is rendered for codes outside the table.
const UnknownReason = "Unknown"

var sm = make(map[uint]Status)

func add(status Status) Status {
	sm[status.Code] = status
	return status
}

// FromCode looks the code up, falling back to [UnknownReason].
func FromCode(code uint) Status {
	if s, ok := sm[code]; ok {
		return s
	}
	return Status{Code: code, Reason: UnknownReason}
}

// Known returns every status in the table.
func Known() []Status {
	out := make([]Status, 0, len(sm))
	for _, s := range sm {
		out = append(out, s)
	}
	return out
}
