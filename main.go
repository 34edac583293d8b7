// Command habitboard tracks daily habits on a calendar with streaks,
// monthly distribution and a journal.
package main

import "github.com/theirongolddev/habitboard/cmd"

func main() {
	cmd.Execute()
}
