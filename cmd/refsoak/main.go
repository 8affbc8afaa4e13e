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

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/gops/agent"
	"github.com/spf13/pflag"

	"github.com/zuoyebang/refcnt/internal/config"
	"github.com/zuoyebang/refcnt/internal/log"
)

func main() {
	configFile := pflag.String("conf.file", "", "please input the refsoak config file")
	workers := pflag.Int("soak.workers", 0, "please input the worker count")
	duration := pflag.Duration("soak.duration", 0, "please input the soak duration")
	pflag.Parse()

	if err := config.GlobalConfig.LoadFromFile(*configFile, *workers, *duration); err != nil {
		panic(fmt.Sprintf("load global config failed err:%s", err.Error()))
	}

	log.NewLogger(&log.Options{
		IsDebug:      config.GlobalConfig.Log.IsDebug,
		RotationTime: config.GlobalConfig.Log.RotationTime,
		LogPath:      config.GlobalConfig.Log.LogPath,
	})

	log.Infof("start refsoak with config\n%s", config.GlobalConfig)

	if config.GlobalConfig.Plugin.OpenGoPs {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Errorf("gops agent listen err:%v", err)
		} else {
			defer agent.Close()
		}
	}

	if config.GlobalConfig.Plugin.OpenMetrics {
		go func() {
			metricsAddr := config.GlobalConfig.Plugin.MetricsAddr
			http.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
				metrics.WritePrometheus(w, true)
			})
			log.Infof("metrics addr:%s", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				log.Errorf("metrics ListenAndServe err:%v", err)
			}
		}()
	}

	s := NewSoak(config.GlobalConfig)

	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		<-sc
		log.Info("refsoak is stopping ...")
		s.Stop()
	}()

	s.Run()

	if err := s.Close(); err != nil {
		log.Errorf("refsoak close err:%s", err.Error())
		s.tracker.LogLeaks()
		s.tracker.ReportJSON(os.Stderr)
		log.CloseLog()
		os.Exit(1)
	}

	log.Info("refsoak is done, no leaks")
	log.CloseLog()
}
