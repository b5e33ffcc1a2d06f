// fuelctl is the command line client of the fuel log.
//
// Usage:
//
//	# Create the schema
//	fuelctl migrate
//
//	# Show the current quinzena and record any pending budget alert
//	fuelctl summary
//
//	# Log a fill-up
//	fuelctl add --vendor primary --amount 150,00 --volume 30,5 --odometer 12345
//
//	# Import a spreadsheet export
//	fuelctl import abastecimentos.csv
//
//	# Mint an API token
//	fuelctl token --subject phone
package main

func main() {
	Execute()
}
