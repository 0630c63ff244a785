package config

// Template is the commented config file written by "dwcheck config init".
const Template = `# dwcheck configuration
#
# Values may be overridden with DWCHECK_* environment variables,
# e.g. DWCHECK_SERVER_PASSWORD for server.password.

# Remote server mirroring the workspace
server:
  # Transport: ftp or sftp
  type: ftp
  host: ""
  # 0 uses the default port (21 for ftp, 22 for sftp)
  port: 0
  user: ""
  password: ""
  # Remote directory matching the workspace root
  dir: /
  # sftp only: PEM private key and known_hosts file
  private_key: ""
  known_hosts: ""
  timeout_seconds: 30

# Who you are when checking files out
identity:
  # Defaults to your login name
  username: ""
  # Defaults to <username>@<email_domain>
  email: ""
  email_domain: ""

workspace:
  # Defaults to the current directory
  root: ""
  # Glob patterns skipped when scanning the workspace
  exclude: []
  resolve_workers: 8

checkout:
  # Download the remote copy after checkout: ask, always or never
  pull: ask

logging:
  enabled: true
  # debug, info, warn or error
  level: info
  max_size_mb: 10
  max_backups: 3
  compress: true

tui:
  # Refresh the explorer when files change on disk
  watch: true
`
