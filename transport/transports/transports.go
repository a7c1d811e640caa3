// Package transports imports all built-in sink transports for
// auto-registration with the default registry.
package transports

import (
	// Import all transports for side-effect registration
	_ "github.com/drblury/fakeflow/transport/aws"
	_ "github.com/drblury/fakeflow/transport/channel"
	_ "github.com/drblury/fakeflow/transport/http"
	_ "github.com/drblury/fakeflow/transport/io"
	_ "github.com/drblury/fakeflow/transport/jetstream"
	_ "github.com/drblury/fakeflow/transport/kafka"
	_ "github.com/drblury/fakeflow/transport/nats"
	_ "github.com/drblury/fakeflow/transport/postgres"
	_ "github.com/drblury/fakeflow/transport/rabbitmq"
	_ "github.com/drblury/fakeflow/transport/sqlite"
)
