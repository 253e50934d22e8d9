package models

// EmailMessage is a normalized inbox message: headers we care about plus
// the first text/plain body part, already decoded.
type EmailMessage struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CalendarTask describes an event to append to the user's primary
// calendar. Date is "2006-01-02"; times are "15:04".
type CalendarTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}
