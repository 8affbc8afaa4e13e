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

package task

import (
	"sync/atomic"
	"time"

	"github.com/zuoyebang/refcnt/internal/log"
)

const (
	StatusWait = iota
	StatusDone
	StatusError
)

type Task struct {
	Arg interface{}
	CB  func(*Task) error
	ID  int64

	Error  error
	Status int

	BeginTime  time.Time
	StartTime  time.Time
	FinishTime time.Time

	done chan struct{}
}

func (task *Task) run() {
	log.Show(log.TypeInfo, "task", "run", "id", task.ID, "arg", task.Arg)
	defer log.Cost("task ", log.FileLine(task.CB, 3), " id: ", task.ID, " arg: ", task.Arg)()

	task.StartTime = time.Now()
	defer func() { task.FinishTime = time.Now() }()

	if e := task.CB(task); e != nil {
		task.Status = StatusError
		task.Error = e
		return
	}

	task.Status = StatusDone
}

// Wait blocks until the task's callback has returned or panicked.
func (task *Task) Wait() {
	<-task.done
}

var taskID int64

// Run starts cb on its own goroutine. A panic in cb is logged and leaves
// the task in StatusWait.
func Run(arg interface{}, cb func(*Task) error) *Task {
	task := &Task{
		ID:        atomic.AddInt64(&taskID, 1),
		Arg:       arg,
		CB:        cb,
		BeginTime: time.Now(),
		done:      make(chan struct{}),
	}
	go func() {
		defer close(task.done)
		defer func() {
			if e := recover(); e != nil {
				log.Warn(e)
			}
		}()
		task.run()
	}()
	return task
}
