package models

// Stats счётчики панели администратора.
type Stats struct {
	TotalSchools      int `json:"totalSchools"`
	TotalInstructors  int `json:"totalInstructors"`
	TotalSubscribers  int `json:"totalSubscribers"`
	RecentSubscribers int `json:"recentSubscribers"`
}
