package entity

// SignalSet is the contextual evidence observed for one login attempt.
type SignalSet struct {
	KnownDevice    bool
	KnownLocation  bool
	NormalTime     bool
	FailedAttempts int
}
