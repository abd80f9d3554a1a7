package common

// AuthorizationHeaderName carries bearer credentials on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only authorization scheme accepted by the API.
const BearerScheme = "Bearer"

// RegistrationTokenSalt namespaces registration tokens in the token codec.
const RegistrationTokenSalt = "register"

// OTPLength is the number of decimal digits in a registration OTP.
const OTPLength = 6
