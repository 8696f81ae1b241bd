package predictor

import "fmt"

func errWidth(row, labels int) error {
	return fmt.Errorf("model output width %d does not match %d labels", row, labels)
}

func errRowCount(rows, texts int) error {
	return fmt.Errorf("model returned %d rows for %d texts", rows, texts)
}
