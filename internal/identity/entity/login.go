package entity

type LoginStatus string

const (
	LoginStatusSuccess    LoginStatus = "success"
	LoginStatusMFAPending LoginStatus = "mfa_pending"
)

func (s LoginStatus) String() string {
	return string(s)
}
