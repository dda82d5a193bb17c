package model

import "time"

// UsageRecord is one day of router traffic statistics.
// Records are written by an external scraper and never modified here.
type UsageRecord struct {
	Date              time.Time `db:"date" bson:"date" json:"date"`
	Connections       int64     `db:"connections" bson:"connections" json:"connections"`
	OnlineTime        int64     `db:"online_time" bson:"online_time" json:"online_time"` // minutes
	MegabytesSent     float64   `db:"megabytes_sent" bson:"megabytes_sent" json:"megabytes_sent"`
	MegabytesReceived float64   `db:"megabytes_received" bson:"megabytes_received" json:"megabytes_received"`
	MegabytesTotal    float64   `db:"megabytes_total" bson:"megabytes_total" json:"megabytes_total"`
}

// AggregateResult summarizes every record matched by a window.
type AggregateResult struct {
	// SinceDate is the earliest matched date, nil when nothing matched.
	SinceDate              *time.Time `bson:"since_date" json:"since_date"`
	Items                  int64      `bson:"items" json:"items"`
	TotalConnections       int64      `bson:"total_connections" json:"total_connections"`
	TotalOnlineTime        int64      `bson:"total_online_time" json:"total_online_time"`
	TotalMegabytesSent     float64    `bson:"total_megabytes_sent" json:"total_megabytes_sent"`
	TotalMegabytesReceived float64    `bson:"total_megabytes_received" json:"total_megabytes_received"`
	TotalMegabytes         float64    `bson:"total_megabytes" json:"total_megabytes"`
}
