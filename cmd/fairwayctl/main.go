// Command fairwayctl scores golfer profiles offline and drives load runs
// against a fairway server.
package main

func main() {
	Execute()
}
