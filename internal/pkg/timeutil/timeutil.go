package timeutil

import "time"

const DateLayout = "2006-01-02"

func NowUnix() int64 {
	return time.Now().Unix()
}
