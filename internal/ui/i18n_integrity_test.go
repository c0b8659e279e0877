package ui_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinpanel/internal/config"
)

// TestI18nIntegrity ensures that every translation key defined in config.go
// actually exists in each locale JSON file.
func TestI18nIntegrity(t *testing.T) {
	keysToCheck := []string{
		config.TKeyWinTitle,
		config.TKeyWinSettings,
		config.TKeyTabUpcoming,
		config.TKeyTabUrgent,
		config.TKeyLockPrompt,
		config.TKeyLockMismatch,
		config.TKeyBtnClear,
		config.TKeyEmptyUpcoming,
		config.TKeyEmptyUrgent,
		config.TKeyBtnRefresh,
		config.TKeyBtnSettings,
		config.TKeyBtnAddTodo,
		config.TKeyBtnDelete,
		config.TKeyDlgAddTodo,
		config.TKeyLblTodoTitle,
		config.TKeyLblPriority,
		config.TKeyLblDue,
		config.TKeyHelpDue,
		config.TKeyPrioHigh,
		config.TKeyPrioMedium,
		config.TKeyPrioLow,
		config.TKeyDueAt,
		config.TKeyNotifSuccess,
		config.TKeyNotifError,
		config.TKeyModeWeb,
		config.TKeyModeLocal,
		config.TKeyLblLanguage,
		config.TKeyHelpLanguage,
		config.TKeyLblMinutes,
		config.TKeyLblRefresh,
		config.TKeyHelpInterval,
		config.TKeyLblPort,
		config.TKeyHelpPort,
		config.TKeyLblGeneral,
		config.TKeyLblFeed,
		config.TKeyBtnSave,
		config.TKeyBtnCancel,
		config.TKeyLblFooter,
		config.TKeyBtnBrowse,
		config.TKeyLblURL,
		config.TKeyHelpURL,
		config.TKeyLblUser,
		config.TKeyLblPass,
		config.TKeyLblSource,
		config.TKeyLblContacts,
		config.TKeyHelpContacts,
		// Row Formats
		config.TKeyEvtBirthday,
		config.TKeyEvtBirthdayAge,
		config.TKeyFormatDate,
		config.TKeyMinutesShort,
		// Validation Errors
		config.TKeyErrPortReq,
		config.TKeyErrPortNum,
		config.TKeyErrPortRange,
		config.TKeyErrTitleReq,
		config.TKeyErrDueFormat,
	}

	definedKeys := make(map[string]bool)
	for _, k := range keysToCheck {
		definedKeys[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			file := fmt.Sprintf("active.%s.json", lang)

			// Adjust path if running test from internal/ui or root
			path := filepath.Join("locales", file)
			content, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				// Fallback for running tests from different CWD
				path = filepath.Join("..", "..", "internal", "ui", "locales", file)
				content, err = os.ReadFile(path)
			}
			require.NoErrorf(t, err, "Must load %s", file)

			var jsonMap map[string]interface{}
			err = json.Unmarshal(content, &jsonMap)
			require.NoError(t, err, "JSON must be valid")

			// Verify consistency
			for key := range definedKeys {
				_, exists := jsonMap[key]
				assert.Truef(t, exists, "Key '%s' defined in config.go is missing in %s", key, file)
			}

			// Check for orphan keys in JSON (keys that exist in JSON but not in Go)
			for jsonKey := range jsonMap {
				if strings.HasPrefix(jsonKey, "_") {
					continue
				}
				if !definedKeys[jsonKey] {
					t.Logf("Warning: Key '%s' exists in %s but is not checked in the test suite (might be unused)", jsonKey, file)
				}
			}
		})
	}
}
