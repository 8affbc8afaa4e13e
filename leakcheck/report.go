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

package leakcheck

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/zuoyebang/refcnt/internal/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Check returns nil when nothing is live, otherwise an error summarizing
// the leaked objects by kind.
func (t *Tracker) Check() error {
	recs := t.Snapshot()
	if len(recs) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for i := range recs {
		counts[recs[i].Kind]++
	}
	var b strings.Builder
	for kind, n := range counts {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(kind)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(n))
	}
	return errors.Newf("leakcheck: %d live object(s): %s", len(recs), b.String())
}

type report struct {
	Live    int      `json:"live"`
	Records []Record `json:"records"`
}

// ReportJSON writes the live records as a JSON document.
func (t *Tracker) ReportJSON(w io.Writer) error {
	recs := t.Snapshot()
	data, err := json.MarshalIndent(&report{Live: len(recs), Records: recs}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "leakcheck: marshal report")
	}
	if _, err = w.Write(data); err != nil {
		return errors.Wrap(err, "leakcheck: write report")
	}
	return nil
}

// LogLeaks writes one warning per leaked object to the global log, with its
// creation stack when stacks were enabled.
func (t *Tracker) LogLeaks() {
	recs := t.Snapshot()
	if len(recs) == 0 {
		log.Info("leakcheck: no live objects")
		return
	}

	for i := range recs {
		rec := &recs[i]
		if rec.Stack != "" {
			log.Warnf("leakcheck: live %s id:%d age:%s stack:\n%s",
				rec.Kind, rec.ID, time.Since(rec.CreatedAt), rec.Stack)
		} else {
			log.Warnf("leakcheck: live %s id:%d age:%s",
				rec.Kind, rec.ID, time.Since(rec.CreatedAt))
		}
	}
}
