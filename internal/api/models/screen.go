package models

// Screen is the current screen state.
type Screen struct {
	State       string     `json:"state"`
	Generation  uint64     `json:"generation"`
	LastOutcome string     `json:"lastOutcome"`
	LastError   *string    `json:"lastError,omitempty"`
	Closed      bool       `json:"closed"`
	View        ScreenView `json:"view"`
}

// ScreenView mirrors the rendered ViewState.
type ScreenView struct {
	LocationTitle    string     `json:"locationTitle"`
	LocationSubtitle string     `json:"locationSubtitle"`
	HasReading       bool       `json:"hasReading"`
	AQIValue         *int       `json:"aqiValue,omitempty"`
	Category         string     `json:"category,omitempty"`
	CategoryLabel    string     `json:"categoryLabel,omitempty"`
	Background       string     `json:"background,omitempty"`
	FormattedTime    string     `json:"formattedTime,omitempty"`
	MeasuredAt       *Timestamp `json:"measuredAt,omitempty"`
}

// Notice is a transient message shown on the screen.
type Notice struct {
	Generation uint64    `json:"generation"`
	Level      string    `json:"level"`
	Text       string    `json:"text"`
	At         Timestamp `json:"at"`
}

// NoticeList is a page of recent notices, newest last.
type NoticeList struct {
	Items []Notice `json:"items"`
}

// RefreshAccepted is returned when a manual refresh was queued.
type RefreshAccepted struct {
	Status    string `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}
