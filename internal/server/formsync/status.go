package formsync

// maxReasonLen caps the persistence-error detail written back to the
// sheet so the status cell stays readable.
const maxReasonLen = 20

type statusKind int

const (
	kindOK statusKind = iota
	kindDuplicated
	kindMissingUser
	kindInvalidUser
	kindPersistence
)

// Status is the per-row sync outcome. The zero value is OK; construct
// the others through the exported values and PersistenceError. Any
// non-empty serialized status in the sheet means the row is settled
// and is never reconsidered.
type Status struct {
	kind   statusKind
	reason string
}

var (
	StatusOK          = Status{kind: kindOK}
	StatusDuplicated  = Status{kind: kindDuplicated}
	StatusMissingUser = Status{kind: kindMissingUser}
	StatusInvalidUser = Status{kind: kindInvalidUser}
)

// PersistenceError wraps a storage failure detail into a row status.
func PersistenceError(reason string) Status {
	return Status{kind: kindPersistence, reason: reason}
}

// String serializes the status to the exact cell values the intake
// sheet contract defines.
func (s Status) String() string {
	switch s.kind {
	case kindOK:
		return "OK"
	case kindDuplicated:
		return "DUPLICATED"
	case kindMissingUser:
		return "ERR: MISSING USER ID"
	case kindInvalidUser:
		return "ERR: INVALID USER"
	case kindPersistence:
		reason := s.reason
		if len(reason) > maxReasonLen {
			reason = reason[:maxReasonLen]
		}
		return "ERR: DB ERROR " + reason
	default:
		return "ERR: DB ERROR unknown status"
	}
}
