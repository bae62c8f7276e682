// Package validation defines the outcomes returned when checking blocks and
// transactions. Outcomes are data, never errors, so callers can branch and
// log on the exact reason.
package validation

// Result is the outcome of validating an entity or chain.
type Result int

// Set of validation outcomes.
const (
	Success Result = iota
	Neutral

	FailureUnknown
	FailureEntityInvalid
	FailureSignatureNotVerifiable
	FailureHeightMismatch
	FailureChainTooLong
	FailureHitNotBelowTarget
	FailurePastDeadline
	FailureFutureDeadline
	FailureTimestampTooFarInFuture
	FailureInsufficientFee
	FailureInsufficientBalance
	FailureMessageTooLarge
	FailureSelfSignedTransaction
	FailureConflictingMultisigModification
	FailureMultisigModificationMultipleDeletes
	FailureMultisigNoModifications
	FailureMultisigAlreadyACosigner
	FailureMultisigNotACosigner
	FailureMultisigMissingCosigners
	FailureMultisigMismatchedSignature
	FailureImportanceTransferInProgress
	FailureImportanceTransferNeedsToBeActive
	FailureImportanceTransferNeedsToBeDeactivated
	FailureDestinationAccountHasPreexistingBalanceTransfer
	FailureTransactionNotAllowedForRemote
	FailureTransactionNotAllowedForMultisig
	FailurePreviousHashMismatch
)

var names = map[Result]string{
	Success:                                                "SUCCESS",
	Neutral:                                                "NEUTRAL",
	FailureUnknown:                                         "FAILURE_UNKNOWN",
	FailureEntityInvalid:                                   "FAILURE_ENTITY_INVALID",
	FailureSignatureNotVerifiable:                          "FAILURE_SIGNATURE_NOT_VERIFIABLE",
	FailureHeightMismatch:                                  "FAILURE_HEIGHT_MISMATCH",
	FailureChainTooLong:                                    "FAILURE_CHAIN_TOO_LONG",
	FailureHitNotBelowTarget:                               "FAILURE_HIT_NOT_BELOW_TARGET",
	FailurePastDeadline:                                    "FAILURE_PAST_DEADLINE",
	FailureFutureDeadline:                                  "FAILURE_FUTURE_DEADLINE",
	FailureTimestampTooFarInFuture:                         "FAILURE_TIMESTAMP_TOO_FAR_IN_FUTURE",
	FailureInsufficientFee:                                 "FAILURE_INSUFFICIENT_FEE",
	FailureInsufficientBalance:                             "FAILURE_INSUFFICIENT_BALANCE",
	FailureMessageTooLarge:                                 "FAILURE_MESSAGE_TOO_LARGE",
	FailureSelfSignedTransaction:                           "FAILURE_SELF_SIGNED_TRANSACTION",
	FailureConflictingMultisigModification:                 "FAILURE_CONFLICTING_MULTISIG_MODIFICATION",
	FailureMultisigModificationMultipleDeletes:             "FAILURE_MULTISIG_MODIFICATION_MULTIPLE_DELETES",
	FailureMultisigNoModifications:                         "FAILURE_MULTISIG_NO_MODIFICATIONS",
	FailureMultisigAlreadyACosigner:                        "FAILURE_MULTISIG_ALREADY_A_COSIGNER",
	FailureMultisigNotACosigner:                            "FAILURE_MULTISIG_NOT_A_COSIGNER",
	FailureMultisigMissingCosigners:                        "FAILURE_MULTISIG_MISSING_COSIGNERS",
	FailureMultisigMismatchedSignature:                     "FAILURE_MULTISIG_MISMATCHED_SIGNATURE",
	FailureImportanceTransferInProgress:                    "FAILURE_IMPORTANCE_TRANSFER_IN_PROGRESS",
	FailureImportanceTransferNeedsToBeActive:               "FAILURE_IMPORTANCE_TRANSFER_NEEDS_TO_BE_ACTIVE",
	FailureImportanceTransferNeedsToBeDeactivated:          "FAILURE_IMPORTANCE_TRANSFER_NEEDS_TO_BE_DEACTIVATED",
	FailureDestinationAccountHasPreexistingBalanceTransfer: "FAILURE_DESTINATION_ACCOUNT_HAS_PREEXISTING_BALANCE_TRANSFER",
	FailureTransactionNotAllowedForRemote:                  "FAILURE_TRANSACTION_NOT_ALLOWED_FOR_REMOTE",
	FailureTransactionNotAllowedForMultisig:                "FAILURE_TRANSACTION_NOT_ALLOWED_FOR_MULTISIG",
	FailurePreviousHashMismatch:                            "FAILURE_PREVIOUS_HASH_MISMATCH",
}

// String implements the fmt.Stringer interface.
func (r Result) String() string {
	if s, exists := names[r]; exists {
		return s
	}

	return "FAILURE_UNKNOWN"
}

// IsSuccess reports whether the outcome is Success.
func (r Result) IsSuccess() bool {
	return r == Success
}

// IsFailure reports whether the outcome rejects the entity. Neutral is not a
// failure: the entity is already known and must not be treated as an offense.
func (r Result) IsFailure() bool {
	return r != Success && r != Neutral
}

// MarshalText implements the encoding.TextMarshaler interface.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
