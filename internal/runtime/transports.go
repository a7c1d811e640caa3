package runtime

// Register every built-in sink transport with transport.DefaultRegistry.
import _ "github.com/drblury/fakeflow/transport/transports"
