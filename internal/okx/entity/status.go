package entity

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirming Status = "confirming"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// StatusFromState переводит числовой state OKX в наш словарь.
// "2" (failed у OKX) сознательно попадает в error вместе с прочими кодами.
func StatusFromState(state string) Status {
	switch state {
	case "0":
		return StatusPending
	case "1":
		return StatusSuccess
	case "3":
		return StatusConfirming
	default:
		return StatusError
	}
}
