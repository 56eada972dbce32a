// Package services holds the error taxonomy and context plumbing shared by
// the pipeline components. Sentinel markers classify failures for the queue
// without forcing components to know about queue statuses.
package services
