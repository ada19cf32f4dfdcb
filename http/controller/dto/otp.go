package dto

type RequestOtpDTO struct {
	Recipient string `json:"recipient" binding:"required"`
}

type VerifyOtpDTO struct {
	Recipient string `json:"recipient" binding:"required"`
	Code      string `json:"code" binding:"required,len=6,numeric"`
}
