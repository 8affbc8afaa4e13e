// Copyright 2019-2024 Xu Ruibo (hustxurb@163.com) and Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

const (
	MonthlyRotate = "Monthly"
	DailyRotate   = "Daily"
	HourlyRotate  = "Hourly"
)

const DefaultRotate = DailyRotate

const rotateKeepAge = 14 * 24 * time.Hour

func CheckRotation(rotation string) bool {
	switch rotation {
	case MonthlyRotate, DailyRotate, HourlyRotate:
		return true
	}
	return false
}

func rotationParam(rotation string) (string, time.Duration) {
	switch rotation {
	case MonthlyRotate:
		return ".%Y%m", 30 * 24 * time.Hour
	case HourlyRotate:
		return ".%Y%m%d%H", time.Hour
	default:
		return ".%Y%m%d", 24 * time.Hour
	}
}

func getRotateLogs(path, rotation string) *rotatelogs.RotateLogs {
	format, duration := rotationParam(rotation)
	rl, _ := rotatelogs.New(
		path+format,
		rotatelogs.WithLinkName(path),
		rotatelogs.WithMaxAge(rotateKeepAge),
		rotatelogs.WithRotationTime(duration),
	)
	return rl
}
