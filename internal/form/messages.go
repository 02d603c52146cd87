package form

// Field keys shared by the login definitions.
const (
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
	FieldPassword    = "password"
)

// Default user-facing messages.  A FormDef may override any of them per rule.
const (
	MsgEmailRequired     = "이메일을 입력해주세요"
	MsgEmailInvalid      = "잘못된 이메일 형식입니다"
	MsgPhoneTooShort     = "전화번호는 11자리 이상이어야 합니다"
	MsgPasswordRequired  = "비밀번호를 입력해주세요"
	MsgPasswordTooShort  = "비밀번호는 8자리 이상이어야 합니다"
	MsgPasswordNoLetter  = "비밀번호는 영문자를 포함해야 합니다"
	MsgPasswordNoDigit   = "비밀번호는 숫자를 포함해야 합니다"
	MsgPasswordNoSpecial = "비밀번호는 최소 1개의 특수문자를 포함해야 합니다"
)

// defaultMessages is keyed by "<field>.<rule name>".
var defaultMessages = map[string]string{
	FieldEmail + "." + KindRequired:        MsgEmailRequired,
	FieldEmail + "." + KindEmail:           MsgEmailInvalid,
	FieldPhoneNumber + "." + KindMinLength: MsgPhoneTooShort,
	FieldPassword + "." + KindRequired:     MsgPasswordRequired,
	FieldPassword + "." + KindMinLength:    MsgPasswordTooShort,
	FieldPassword + "." + KindLetter:       MsgPasswordNoLetter,
	FieldPassword + "." + KindDigit:        MsgPasswordNoDigit,
	FieldPassword + "." + KindSpecial:      MsgPasswordNoSpecial,
}

// defaultMessage returns the catalogued message for field.rule, if any.
func defaultMessage(field, rule string) (string, bool) {
	m, ok := defaultMessages[field+"."+rule]
	return m, ok
}
