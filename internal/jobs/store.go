// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import "context"

// Store persists job records.
type Store interface {

	/*
		Save writes the full job record and refreshes its expiry.

		Parameters:
		  - context: context.Context
		  - job: *Job

		Returns:
		  - error: Connectivity or serialization failures
	*/
	Save(context context.Context, job *Job) error

	/*
		Get loads one job.

		Returns:
		  - *Job: The job record
		  - error: apperr.NotFound if missing or expired
	*/
	Get(context context.Context, id string) (*Job, error)

	/*
		List returns the most recent jobs, newest first.

		Parameters:
		  - context: context.Context
		  - limit: int

		Returns:
		  - []*Job: Jobs that have not expired
		  - error: Connectivity failures
	*/
	List(context context.Context, limit int) ([]*Job, error)
}
