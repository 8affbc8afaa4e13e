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
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalLog(t *testing.T) {
	dir := "./tmplog/"
	os.MkdirAll(path.Dir(dir), 0777)
	defer os.RemoveAll(dir)
	NewLogger(&Options{
		IsDebug:      false,
		RotationTime: DailyRotate,
		LogPath:      dir + "refcnt",
	})
	defer CloseLog()

	Info("test Info ", "success")
	Warn("test Warn ", "success")
	Error("test Error ", "success")
	Debug("test Debug ", "success")
	Infof("test Infof %s", "success")
	Warnf("test Warnf %s", "success")
	Errorf("test Errorf %s", "success")
	Debugf("test Debugf %s", "success")
	Fatalf("test Fatalf %s", "success")
	Show(TypeInfo, "live", 3, "freed", 1)
	Cost("stats")()
}

func TestCheckRotation(t *testing.T) {
	assert.True(t, CheckRotation(DailyRotate))
	assert.True(t, CheckRotation(HourlyRotate))
	assert.True(t, CheckRotation(MonthlyRotate))
	assert.False(t, CheckRotation("Weekly"))
}
