// Package config loads hyper.yaml, the configuration file of the hyper
// command.
//
// # Configuration File Structure
//
//	server:
//	  host: ""
//	  port: 8080
//	  websocketPath: /ws
//	  metricsPath: /metrics   # "-" disables the endpoint
//	  maxSessions: 0
//	session:
//	  readTimeout: 60s
//	  writeTimeout: 10s
//	  heartbeat: 30s
//	  idleTimeout: 5m
//	  maxMessageSize: 65536
//	  maxEventQueue: 256
//	app:
//	  demo: counter
//	log:
//	  level: info
//	  format: text
//
// Every key is optional. Runtime converts the result for server.New.
package config
