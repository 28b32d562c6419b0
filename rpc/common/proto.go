package common

import (
	"fmt"
	"strings"
)

// MaxMessageSize is the largest request or response payload a peer may send
const MaxMessageSize = 100000

// --------------------------------------------------------------------------
// Message Structures
// --------------------------------------------------------------------------

// Request is a socketmap query: the name of the map and the key to look up
type Request struct {
	Name string
	Key  string
}

// Response is a socketmap reply. Data is the value for StatusOK and the
// reason for the error statuses.
type Response struct {
	Status Status
	Data   string
}

// Status is the first word of every socketmap response
type Status string

const (
	StatusOK       Status = "OK"
	StatusNotFound Status = "NOTFOUND"
	StatusTemp     Status = "TEMP"
	StatusTimeout  Status = "TIMEOUT"
	StatusPerm     Status = "PERM"
)

func (s Status) valid() bool {
	switch s {
	case StatusOK, StatusNotFound, StatusTemp, StatusTimeout, StatusPerm:
		return true
	}
	return false
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewRequest creates a new lookup request
func NewRequest(name, key string) *Request {
	return &Request{Name: name, Key: key}
}

// NewOKResponse creates a response for a found key
func NewOKResponse(value string) *Response {
	return &Response{Status: StatusOK, Data: value}
}

// NewNotFoundResponse creates a response for a missing key
func NewNotFoundResponse() *Response {
	return &Response{Status: StatusNotFound}
}

// NewTempResponse creates a response for a failure the caller should retry later
func NewTempResponse(reason string) *Response {
	return &Response{Status: StatusTemp, Data: reason}
}

// NewPermResponse creates a response for a failure that retrying won't fix
func NewPermResponse(reason string) *Response {
	return &Response{Status: StatusPerm, Data: reason}
}

// --------------------------------------------------------------------------
// Wire Format
// --------------------------------------------------------------------------

// Bytes encodes the request payload (without netstring framing)
func (r *Request) Bytes() []byte {
	return []byte(r.Name + " " + r.Key)
}

// ParseRequest decodes a request payload of the form "name key"
func ParseRequest(b []byte) (*Request, error) {
	name, key, ok := strings.Cut(string(b), " ")
	if !ok || name == "" {
		return nil, fmt.Errorf("malformed request: %q", b)
	}
	if key == "" {
		return nil, fmt.Errorf("malformed request: empty key")
	}
	return &Request{Name: name, Key: key}, nil
}

// Bytes encodes the response payload (without netstring framing)
func (r *Response) Bytes() []byte {
	return []byte(string(r.Status) + " " + r.Data)
}

// ParseResponse decodes a response payload of the form "STATUS data"
func ParseResponse(b []byte) (*Response, error) {
	status, data, _ := strings.Cut(string(b), " ")
	if !Status(status).valid() {
		return nil, fmt.Errorf("malformed response status: %q", status)
	}
	return &Response{Status: Status(status), Data: data}, nil
}

func (r *Response) String() string {
	return fmt.Sprintf("%s %s", r.Status, r.Data)
}
