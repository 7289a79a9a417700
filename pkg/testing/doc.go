// Package testing provides helpers for testing widget trees and refresh
// schedulers.
//
// # Quick Start
//
// Mount a widget under a fake clock, advance time, and assert on the tree:
//
//	func TestDepartment(t *testing.T) {
//	    tester := signagetest.MountWithT(t, widgets.Department{Source: fake})
//
//	    // One scheduler is waiting; fire it.
//	    tester.Tick(1, time.Second)
//
//	    signagetest.Eventually(t, func() bool {
//	        return tester.FindByClass("lecturer") != nil
//	    }, "lecturer rendered")
//	}
//
// Scheduler loops run on their own goroutines. Tick waits until the expected
// number of timers is pending before advancing the clock, so a tick is never
// lost to a loop that has not re-armed yet.
package testing
