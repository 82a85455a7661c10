package common

import "time"

// ConfigFileName is the default configuration file searched for in the
// working directory before falling back to the user config home.
const ConfigFileName = "syncconfig.yml"

// ConfigDirName is the subdirectory of the user config home holding the
// fallback configuration file.
const ConfigDirName = "kpsync"

// RecycleBinName is the reserved group name excluded from entry searches.
const RecycleBinName = "Recycle Bin"

// SocketFileName is the unix socket the handle-cache daemon listens on.
const SocketFileName = "kpsyncd.sock"

// DefaultCacheTTL is how long the daemon keeps a registered store key when
// the operator passes --timeout without a value.
const DefaultCacheTTL = 600 * time.Second
