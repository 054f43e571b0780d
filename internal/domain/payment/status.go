package payment

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

const (
	GatewayCOD    = "cod"
	GatewayKhalti = "khalti"
	GatewayCard   = "card"
)

const DefaultPhone = "9800000000"
