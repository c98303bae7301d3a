package domain

// Intent is a request to move the cycle history forward. The set of
// intents is closed: only the types in this package implement it.
type Intent interface {
	intent()
}

// CreateCycle appends a new cycle and makes it active.
type CreateCycle struct {
	ID            string
	Task          string
	MinutesAmount int
}

// InterruptCycle stamps the active cycle as interrupted. An empty CycleID
// targets whichever cycle is active.
type InterruptCycle struct {
	CycleID string
}

// FinishCycle stamps the active cycle as finished. An empty CycleID
// targets whichever cycle is active.
type FinishCycle struct {
	CycleID string
}

func (CreateCycle) intent()    {}
func (InterruptCycle) intent() {}
func (FinishCycle) intent()    {}
