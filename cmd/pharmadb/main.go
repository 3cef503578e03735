// Command pharmadb is the terminal client for the PharmaDB list backend.
package main

func main() {
	execute()
}
