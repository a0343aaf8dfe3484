package dto

type NotifierInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Enabled      bool     `json:"enabled"`
	Binary       string   `json:"binary"`
	Capabilities []string `json:"capabilities"`
}

type DoctorResult struct {
	Name            string `json:"name"`
	ChecksumValid   bool   `json:"checksum_valid"`
	BinaryReachable bool   `json:"binary_reachable"`
	LifecycleOK     bool   `json:"lifecycle_ok"`
	Error           string `json:"error,omitempty"`
}

type DigestItem struct {
	ReviewID string `json:"review_id"`
	Subject  string `json:"subject"`
	Topic    string `json:"topic"`
	DueAt    string `json:"due_at"`
	DaysLate int    `json:"days_late,omitempty"`
}

type DigestOutput struct {
	Date     string       `json:"date"`
	Title    string       `json:"title"`
	Body     string       `json:"body"`
	Overdue  []DigestItem `json:"overdue"`
	DueToday []DigestItem `json:"due_today"`
}

type DeliveryResult struct {
	Notifier  string `json:"notifier"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

type SendInput struct {
	Today string `json:"today" validate:"datekey"`
	// Force sends even when nothing is due.
	Force bool `json:"force"`
}

type SendOutput struct {
	Digest     DigestOutput     `json:"digest"`
	Skipped    bool             `json:"skipped"`
	Deliveries []DeliveryResult `json:"deliveries"`
}
