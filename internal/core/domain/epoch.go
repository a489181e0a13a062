package domain

// Epoch identifies one revalidation attempt. Only the result carrying the
// latest epoch may change session state; older ones are dropped.
type Epoch uint64

// UnauthorizedEvent describes a request that came back 401 or 403.
type UnauthorizedEvent struct {
	URL string `json:"url"`
}
