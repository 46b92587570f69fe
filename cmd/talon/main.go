// Talon compiles attribute-based access-control policies into
// per-destination bit-string match keys for a line-rate enforcement
// fabric, and evaluates the same policies exactly in the slow path.
//
// Usage:
//
//	# Start the compiler service with default configuration
//	talon run
//
//	# Start with a custom configuration file
//	talon run --config /etc/talon/config.yaml
//
//	# Validate policy files
//	talon lint --dir policies/
//
//	# Evaluate one source/destination pair against the policy set
//	talon evaluate --source 10.0.0.8 --dest 10.1.0.20
//
//	# Compile once and export the snapshot
//	talon compile --format csv --output keys.csv
//
//	# Inspect stored snapshots
//	talon snapshot list
package main

func main() {
	Execute()
}
