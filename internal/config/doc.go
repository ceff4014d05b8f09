// Package config loads the reactor CLI configuration.
//
// The configuration lives in reactor.yaml (or reactor.yml, reactor.json,
// reactor.jsonc) next to where the CLI runs. JSON files may contain
// comments and trailing commas.
//
// # Configuration File Structure
//
//	log:
//	  level: debug
//	  format: json
//	inspector:
//	  addr: localhost:7070
//	  readOnly: false
//	  shutdownTimeout: 5s
//	metrics:
//	  enabled: true
//	  namespace: reactive
//	tracing:
//	  enabled: false
//	snapshot:
//	  store: s3
//	  bucket: my-bucket
//	  prefix: snapshots/
//	  compression: zstd
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Inspector.Addr)
package config
