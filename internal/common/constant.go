package common

// ServiceName is the OS credential-store service under which all session
// secrets are filed, and the application directory name on disk.
const ServiceName = "ShippingManagerCoPilot"

// LoginMethodBrowser is the only login method supported on this platform.
const LoginMethodBrowser = "browser"
