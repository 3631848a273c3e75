package data

import "github.com/sbobine/sbobine-api/internal/core"

var (
	_ core.JobStore = (*MemoryJobStore)(nil)
	_ core.JobStore = (*RedisJobStore)(nil)
	_ core.JobStore = (*PostgresJobStore)(nil)
	_ core.JobStore = (*MySQLJobStore)(nil)

	_ core.JobReaper = (*MemoryJobStore)(nil)
	_ core.JobReaper = (*PostgresJobStore)(nil)
	_ core.JobReaper = (*MySQLJobStore)(nil)

	_ core.HealthChecker = (*RedisJobStore)(nil)
	_ core.HealthChecker = (*PostgresJobStore)(nil)
	_ core.HealthChecker = (*MySQLJobStore)(nil)
)
