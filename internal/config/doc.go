// Package config loads eventmanager.json.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "inspect": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "prefix": "/debug",
//	    "metrics": true
//	  },
//	  "bridge": {
//	    "path": "/ws",
//	    "writeTimeout": "10s",
//	    "readLimit": 65536
//	  },
//	  "metrics": {
//	    "namespace": "eventmanager"
//	  },
//	  "tracing": {
//	    "tracerName": "eventmanager"
//	  }
//	}
//
// Every field is optional; missing values take the defaults from New.
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := cfg.Logger(os.Stderr)
package config
