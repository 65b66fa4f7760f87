package redis

import "fmt"

const ns = "cinehall:v1"

func KeySessionSummary(sessionID int64) string {
	return fmt.Sprintf("%s:session:%d:summary", ns, sessionID)
}

func KeySessionSeatMap(sessionID int64) string {
	return fmt.Sprintf("%s:session:%d:seatmap", ns, sessionID)
}

func KeyMovieSessions(movieID int64) string {
	return fmt.Sprintf("%s:movie:%d:sessions", ns, movieID)
}

func ChannelSessionsChanged() string {
	return ns + ":sessions:changed"
}
