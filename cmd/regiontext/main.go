// Command regiontext reconciles detected layout regions with a document's
// native text layer and writes per-region text plus the regions left empty.
package main

func main() {
	Execute()
}
