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

package config

const DefaultConfig = `
[log]
is_debug = false
log_path = "log/refsoak"
rotation_time = "Daily"

[plugin]
open_gops = false
open_metrics = false
metrics_addr = ":26780"

[soak]
workers = 8
duration = "30s"
ops_per_sec = 50000
keys = 4096
pin_hold = "5ms"
report_every = "5s"
track_stacks = false

[cache]
capacity = 4096
shards = 8
value_size = "128"

[arena]
chunk_size = "1mb"
max_alloc = "64kb"
`
