/**
 * Copyright 2021 The IcecaneDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package common

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	defaultAddress       = "127.0.0.1"
	defaultPort          = "9100"
	defaultPeers         = 4
	defaultMinChunkSize  = 4096
	defaultDialTimeout   = 5 * time.Second
	defaultReportRetries = 5
	defaultLogLevel      = "info"
)

// Config defines the configuration settings for a comparison run.
// The coordinator and every peer of a cluster run must share the same Address, Port and Peers.
type Config struct {
	// Address and Port of the coordinator that collects the peer reports.
	Address string `yaml:"address"`
	Port    string `yaml:"port"`

	// Peers is the number of peer processes, each owning one contiguous range of the sequences.
	Peers int `yaml:"peers"`

	// Workers is the number of local workers. 0 means runtime.NumCPU().
	// SubWorkers is the number of sub-scans every worker splits its range into. 0 disables subdivision.
	Workers    int `yaml:"workers"`
	SubWorkers int `yaml:"subWorkers"`

	// MinChunkSize is the smallest sub-range a worker hands to a sub-scan.
	MinChunkSize int `yaml:"minChunkSize"`

	DialTimeout   time.Duration `yaml:"dialTimeout"`
	ReportRetries int           `yaml:"reportRetries"`

	LogLevel string `yaml:"logLevel"`
}

// NewDefaultConfig returns a new default configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Address:       defaultAddress,
		Port:          defaultPort,
		Peers:         defaultPeers,
		MinChunkSize:  defaultMinChunkSize,
		DialTimeout:   defaultDialTimeout,
		ReportRetries: defaultReportRetries,
		LogLevel:      defaultLogLevel,
	}
}

// Validate validates a Config and returns an error if it's invalid.
func (conf *Config) Validate() error {
	if conf.Address == "" {
		return fmt.Errorf("invalid address provided in config")
	}
	if conf.Port == "" {
		return fmt.Errorf("invalid port provided in config")
	}
	if conf.Peers <= 0 {
		return fmt.Errorf("invalid peer count %d provided in config", conf.Peers)
	}
	if conf.Workers < 0 || conf.SubWorkers < 0 {
		return fmt.Errorf("invalid worker count provided in config")
	}
	if conf.MinChunkSize <= 0 {
		return fmt.Errorf("invalid min chunk size %d provided in config", conf.MinChunkSize)
	}
	if conf.DialTimeout <= 0 {
		return fmt.Errorf("invalid dial timeout provided in config")
	}
	if conf.ReportRetries < 0 {
		return fmt.Errorf("invalid report retries provided in config")
	}
	if _, err := log.ParseLevel(conf.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q provided in config", conf.LogLevel)
	}
	return nil
}

// CoordinatorTarget returns the host:port the peers dial.
func (conf *Config) CoordinatorTarget() string {
	return fmt.Sprintf("%s:%s", conf.Address, conf.Port)
}

// LoadFromFile loads the config from the file. It assumes that config already has the defaults.
// In the case of an error, it leaves the config untouched.
func (conf *Config) LoadFromFile(path string) error {
	log.Info(fmt.Sprintf("icecanelex::config::LoadFromFile; loading config from file %s", path))
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error(fmt.Sprintf("icecanelex::config::LoadFromFile; error reading config from file %s, error %s", path, err))
		return err
	}
	fconf := Config{}
	err = yaml.Unmarshal(data, &fconf)
	if err != nil {
		log.Error(fmt.Sprintf("icecanelex::config::LoadFromFile; error unmarshalling config from file %s, error %s", path, err))
		return err
	}

	log.WithFields(log.Fields{"config": fconf}).Debug("icecanelex::config::LoadFromFile; read contents from the file")

	// populate fields
	if fconf.Address != "" {
		conf.Address = fconf.Address
	}
	if fconf.Port != "" {
		conf.Port = fconf.Port
	}
	if fconf.Peers != 0 {
		conf.Peers = fconf.Peers
	}
	if fconf.Workers != 0 {
		conf.Workers = fconf.Workers
	}
	if fconf.SubWorkers != 0 {
		conf.SubWorkers = fconf.SubWorkers
	}
	if fconf.MinChunkSize != 0 {
		conf.MinChunkSize = fconf.MinChunkSize
	}
	if fconf.DialTimeout != 0 {
		conf.DialTimeout = fconf.DialTimeout
	}
	if fconf.ReportRetries != 0 {
		conf.ReportRetries = fconf.ReportRetries
	}
	if fconf.LogLevel != "" {
		conf.LogLevel = fconf.LogLevel
	}
	return nil
}
