package state

// Status is the fetch lifecycle of a collection. Only FetchAll moves it.
//
//	idle --FetchAll--> loading --ok--> succeeded
//	                   loading --err-> failed
//	succeeded|failed --FetchAll--> loading
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
