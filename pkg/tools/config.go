package tools

func LoadConfig(filename string, v interface{}) error {
	err := UnmarshalFileYaml(filename, v)
	if err != nil {
		return err
	}

	if err = DoTagFunc(v, []FnObj{{Fn: SetDefaultValueIfNil}}); err != nil {
		return err
	}

	return nil
}
