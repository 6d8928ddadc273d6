package leave

const (
	TypeSick   = "SICK"
	TypeCasual = "CASUAL"
	TypeEarned = "EARNED"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

func ValidType(leaveType string) bool {
	switch leaveType {
	case TypeSick, TypeCasual, TypeEarned:
		return true
	}
	return false
}
