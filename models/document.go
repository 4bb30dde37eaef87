package models

// Document is a decoded API response. The client does not validate its shape.
type Document map[string]interface{}

// Has reports whether the document carries a top-level section
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Kind tags the outcome of a terminal request
type Kind int

const (
	// Success carries the response document
	Success Kind = iota
	// UsageFault is a recoverable caller mistake (no query, no resource)
	UsageFault
	// TransportFault is a network, status or decoding failure
	TransportFault
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case UsageFault:
		return "usage fault"
	case TransportFault:
		return "transport fault"
	default:
		return "unknown"
	}
}

// Result is what an asynchronous request hands to its callback.
// Document is set for Success, Message for UsageFault and Err for both faults.
type Result struct {
	Kind     Kind
	Document Document
	Message  string
	Err      error
}

// OK reports whether the result is a success
func (r Result) OK() bool {
	return r.Kind == Success
}
