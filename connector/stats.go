package connector

import "github.com/Konsultn-Engineering/pgquery/database"

// ConnectionStats represents database connection pool statistics.
type ConnectionStats struct {
	OpenConnections int
	InUse           int
	Idle            int
}

// Stats reports the current state of p.
func Stats(p *database.PgxPool) ConnectionStats {
	if p == nil || p.Pool() == nil {
		return ConnectionStats{}
	}
	s := p.Pool().Stat()
	return ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}
