package validator

// ===== AUTH =====

type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required_trimmed,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" form:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type SendOTPRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
	OTP   string `json:"otp" form:"otp" validate:"required"`
}

// ===== JOBS =====

type JobCreateRequest struct {
	Title       string   `json:"title" form:"title" validate:"required_trimmed,max=200"`
	Company     string   `json:"company" form:"company" validate:"required_trimmed,max=200"`
	Description string   `json:"description" form:"description" validate:"required_trimmed"`
	Location    string   `json:"location" form:"location" validate:"max=200"`
	Deadline    string   `json:"deadline" form:"deadline" validate:"required,deadline"`
	Skills      []string `json:"skills" form:"skills" validate:"omitempty,max=50,dive,max=50"`
	URL         string   `json:"url" form:"url" validate:"omitempty,url,max=500"`
}

// ===== REFERRALS =====

type ApplyRequest struct {
	JobID       string `form:"jobId" json:"jobId" validate:"required"`
	FullName    string `form:"fullName" json:"fullName" validate:"required_trimmed,max=200"`
	CoverLetter string `form:"coverLetter" json:"coverLetter" validate:"max=5000"`
	WhyBetter   string `form:"whyBetter" json:"whyBetter" validate:"required_trimmed,max=5000"`
}

type ReferralCreateRequest struct {
	JobID          string `form:"jobId" json:"jobId" validate:"required"`
	CandidateName  string `form:"candidateName" json:"candidateName" validate:"required_trimmed,max=200"`
	CandidateEmail string `form:"candidateEmail" json:"candidateEmail" validate:"required,email,max=255"`
	Notes          string `form:"notes" json:"notes" validate:"max=5000"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,referral_status"`
}

// ===== CHAT =====

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Message    string `json:"message" validate:"required_trimmed,max=5000"`
}
